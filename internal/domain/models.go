package domain

import "time"

type Image struct {
	Width     int
	Height    int
	Filename  string
	Storename string
	Size      int64
	Path      string
	Hash      string
	CreatedAt time.Time
	URL       string
	DeleteURL string
	Page      string
}

type Profile struct {
	Username      string
	Email         string
	Role          string
	GroupExpire   string
	EmailVerified bool
	DiskUsage     string
	DiskLimit     string
	DiskUsageRaw  int64
	DiskLimitRaw  int64
}

// QuotaRatio reports how much of the disk quota is in use, in [0, 1].
func (p Profile) QuotaRatio() float64 {
	if p.DiskLimitRaw <= 0 {
		return 0
	}
	r := float64(p.DiskUsageRaw) / float64(p.DiskLimitRaw)
	if r > 1 {
		return 1
	}
	return r
}

type HistoryOrder string

const (
	HistoryOrderServer   HistoryOrder = "server"
	HistoryOrderReversed HistoryOrder = "reversed"
)
