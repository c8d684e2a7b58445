package entity

// Roles válidos en los tokens de la consola.
const (
	RoleAdmin     = "admin"
	RoleManager   = "gerente"
	RoleBodeguero = "bodeguero"
	RoleAuditor   = "auditor"
)
