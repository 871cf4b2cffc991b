package main

import (
	"context"
	"flag"
	"log"
	"sort"
	"time"

	"go.uber.org/zap"

	"optilab/internal/repositories"
	"optilab/migrations"
	"optilab/pkg/config"
	"optilab/pkg/database/postgresql"
	"optilab/pkg/service"
	"optilab/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runDemo := flag.Bool("demo", false, "Создать демонстрационные работы и заказы запчастей")
	runTokens := flag.Bool("tokens", false, "Выпустить JWT-токены для демонстрационных акторов")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -demo -tokens)")
	flag.Parse()

	if !*runDemo && !*runTokens && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -demo")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()

	if *runAll || *runDemo {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
		logger := zap.NewNop()
		dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer dbPool.Close()

		if err := postgresql.Migrate(ctx, dbPool, migrations.FS, logger); err != nil {
			log.Fatalf("❌ %v", err)
		}

		jobs := repositories.NewJobRepository(dbPool, logger)
		spareParts := repositories.NewSparePartRepository(dbPool, logger)
		if _, err := seeders.SeedDemoJobs(ctx, jobs, spareParts, time.Now()); err != nil {
			log.Fatalf("❌ Ошибка наполнения демонстрационных работ: %v", err)
		}
		log.Println("======================================================")
	}

	if *runAll || *runTokens {
		tokens, err := seeders.DevTokens(service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL))
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		ids := make([]string, 0, len(tokens))
		for id := range tokens {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			log.Printf("  %-8s %s", id, tokens[id])
		}
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
