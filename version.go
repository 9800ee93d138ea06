package capval

// Version is the capval release version.
const Version = "0.3.0"

// SchemaVersion identifies the CAP AnnData schema revision the default
// rule registry implements.
const SchemaVersion = "1.0"
