package domain

// Message is a plain-text notification.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}
