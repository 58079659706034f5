package scheduler

// Package scheduler provides scheduled job management for the backend.
// It handles:
// - Nightly retraining of prediction artifacts after market close
// - Weekly refresh of the symbol directory
// - Monthly pruning of the cached price history
//
// The main scheduler is implemented in jobs.go
