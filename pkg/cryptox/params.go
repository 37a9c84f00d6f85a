package cryptox

// Argon2id parameters shared by password hashing and key derivation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)
