package model

import "github.com/shopspring/decimal"

const DefaultSavingsRate = 20

// User - строка таблицы Usuarios
type User struct {
	ID          int64           `json:"id_usuario"`
	Name        string          `json:"nombre"`
	Email       string          `json:"correo"`
	Password    string          `json:"contrasena,omitempty"`
	Role        string          `json:"rol"`
	SavingsGoal decimal.Decimal `json:"meta_ahorro"`
	SavingsRate int             `json:"tasa_ahorro"`
}

// UserSettings - подмножество Usuarios, которое читает синхронизатор
type UserSettings struct {
	SavingsGoal decimal.Decimal `json:"meta_ahorro"`
	SavingsRate int             `json:"tasa_ahorro"`
}
