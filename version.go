package tiller

// Version is the current release of the tiller engine.
const Version = "0.4.0"
