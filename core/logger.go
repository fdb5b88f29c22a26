package core

// Logger logs messages along with optional errors, extra data maps and the acting Person.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated caller in logs.
type Person struct {
	ID       string
	Username string
	Role     string
}
