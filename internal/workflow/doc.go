// Package workflow - ядро жизненного цикла работ и заказов запчастей.
//
// Здесь нет ввода-вывода: таблица переходов по ролям, построение записей журнала,
// критерии выборки, аналитика, календарь рабочих часов и поиск просрочек.
// Атомарность чтения-изменения-записи обеспечивают репозитории, вызывая функции
// этого пакета внутри своей транзакции.
package workflow
