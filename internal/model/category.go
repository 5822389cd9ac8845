package model

// Category - категория доходов или расходов. OwnerID == nil означает
// общую категорию, видимую всем пользователям.
type Category struct {
	ID      int64
	Name    string
	OwnerID *int64
	Kind    Kind
}

// Global сообщает, является ли категория общей.
func (c Category) Global() bool {
	return c.OwnerID == nil
}
