package types

import "optilab/pkg/constants"

// Actor - разрешенная личность того, кто выполняет операцию.
// Для роли Branch ID совпадает с branch_id филиала.
type Actor struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
}

func (a Actor) IsAdmin() bool  { return a.Role == constants.RoleAdmin }
func (a Actor) IsBranch() bool { return a.Role == constants.RoleBranch }
func (a Actor) IsLab() bool    { return a.Role == constants.RoleLab }

// DisplayName - имя для записи в журнал.
func (a Actor) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.ID
}
