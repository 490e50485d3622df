package domain

// User - пользователь, от имени которого выполняется submit
type User struct {
	ID       string
	Username string
	IsAdmin  bool
}

// AnonymousGroup - группа, доступ которой распространяется на всех пользователей
const AnonymousGroup = "anonymous"
