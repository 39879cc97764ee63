package project

// Version is stamped via -ldflags on release builds.
var Version = "dev"
