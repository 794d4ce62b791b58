// Package utils exposes helpers shared by the command-line entrypoint.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// environment variables through Viper. LoggerFactory builds zap loggers that
// write to standard error. FlushingWriter keeps report output visible as it is
// produced.
package utils
