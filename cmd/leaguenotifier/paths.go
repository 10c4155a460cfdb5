package main

import "tools.zach/dev/leaguenotifier/internal/paths"

// DataPaths aliases [paths.DataDir] so daemon code can build data directory
// paths without qualifying the internal package name.
type DataPaths = paths.DataDir
