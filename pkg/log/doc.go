// Package log provides a logging abstraction for epochbits components.
//
// Library packages such as ledger take a Logger through an option and
// never write to a global logger. Default implementations are provided
// for zerolog and a no-op logger for testing.
//
// # Usage
//
// Use the zerolog adapter at a configured level:
//
//	level, err := log.ParseLevel("debug")
//	if err != nil {
//	    return err
//	}
//	logger := log.NewZerologAdapterWithLogger(log.NewConsoleLogger(os.Stderr, level))
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
package log
