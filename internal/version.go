package internal

// Version is the bookletgen release reported by --version
const Version = "0.3.0"
