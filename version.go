package disconnected

// Version is the release of the engine and its embedded story.
// It is overridden at build time with -ldflags "-X github.com/aretw0/disconnected.Version=...".
var Version = "0.4.0-dev"
