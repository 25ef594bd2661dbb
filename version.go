package notehub

// Version is the version of the library and of the notehub CLI.
const Version = "0.3.0"
