package common

// UnknownStr is the String() result for values outside an enum.
const UnknownStr = "unknown"
