package hints

// Config tunes generated hints.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxGenerated caps generated hints per problem within one session.
	MaxGenerated int

	// MinLeakLength is the shortest reference answer checked for leaks.
	// Very short answers such as "1" would match almost any text.
	MinLeakLength int
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     300,
		Temperature:   0.4,
		MaxGenerated:  3,
		MinLeakLength: 4,
	}
}
