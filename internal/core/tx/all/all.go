// Package all imports all transaction sub-packages to trigger their init() registrations.
// Import this package in the main application to ensure all transaction types are registered.
package all

import (
	_ "github.com/LeJamon/coveredcall/internal/core/tx/mark"
	_ "github.com/LeJamon/coveredcall/internal/core/tx/mint"
	_ "github.com/LeJamon/coveredcall/internal/core/tx/option"
	_ "github.com/LeJamon/coveredcall/internal/core/tx/oracle"
)
