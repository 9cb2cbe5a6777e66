package constants

import "time"

var NavigationConfig = struct {
	DefaultTimeout time.Duration
	MaxTimeout     time.Duration
}{
	DefaultTimeout: 30 * time.Second,
	MaxTimeout:     120 * time.Second,
}

var ChallengeConfig = struct {
	MaxAttempts int
	RetryDelay  time.Duration
}{
	MaxAttempts: 3,
	RetryDelay:  10 * time.Second,
}

// ChallengePhrases are matched case-insensitively against page title and body.
var ChallengePhrases = []string{
	"checking your browser",
	"just a moment",
	"cloudflare",
	"verify you are human",
	"attention required",
	"ddos protection",
}

var PoolConfig = struct {
	MaxWorkers       int
	BaseDelay        time.Duration
	DelayJitter      time.Duration
	ProgressInterval int
}{
	MaxWorkers:       3,
	BaseDelay:        2 * time.Second,
	DelayJitter:      1 * time.Second,
	ProgressInterval: 10,
}

var PhotoConfig = struct {
	MinDimension int
	AltBonus     float64
	FetchTimeout time.Duration
}{
	MinDimension: 100,
	AltBonus:     1.15,
	FetchTimeout: 30 * time.Second,
}

var ExportConfig = struct {
	PageSize       int
	RequestTimeout time.Duration
	PageDelay      time.Duration
}{
	PageSize:       200,
	RequestTimeout: 15 * time.Second,
	PageDelay:      350 * time.Millisecond,
}
