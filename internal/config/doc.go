// Package config provides configuration structures and utilities for kakusu.
// It defines the options that control oracle access (timeouts, politeness
// delay, proxy), the analysis run (concurrency, run timeout), persistence
// and report output.
package config
