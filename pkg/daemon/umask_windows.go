package daemon

// No-op on Windows.
func setUmaskForDaemon() {}
