package models

// Credentials is the payload stored in the key/value store under a
// credential reference. Jobs carry only the reference; the secret is
// resolved at dispatch time and never persisted on the job.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
