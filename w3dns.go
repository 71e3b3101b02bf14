package w3dns

var (
	Version = "0.3.1" // manually set semantic version number
)
