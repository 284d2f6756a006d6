package storage

// cacheFile is the on-disk shape: {"token": string|null}.
type cacheFile struct {
	Token *string `json:"token"`
}
