package common

// Version is overridden at build time via -ldflags.
var Version = "dev"

// PackageName is used as the metrics namespace and default log service tag.
const PackageName = "synbio_registry"
