package config

// Application constants for the EpiPulse tracker
const (
	AppName    = "EpiPulse"
	AppVersion = "1.0.0"

	// DefaultUserAgent identifies the tracker to the dataset host
	DefaultUserAgent = "epipulse-tracker/1.0"
)
