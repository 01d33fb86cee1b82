// Package common provides the configuration and logging shared by the fundb
// packages and the fundb command line tool.
//
// The package focuses on:
//   - A single configuration structure read once at startup
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Config: Process-wide settings (base directory for generated paths, default
//     in-memory capacity, value serializer, log level). InitEnv loads .env files
//     and wires viper to FUNDB_* environment variables, LoadConfig reads the result.
//     The base directory comes from FUNDB_DIR and defaults to the system temp dir.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger factory (logger.SetLoggerFactory) while providing consistent formatting
//     across the application. Packages obtain their logger with
//     logger.GetLogger(common.LoggerStore) and friends; InitLoggers applies the
//     configured level to all of them.
package common
