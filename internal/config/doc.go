// Package config provides configuration management for mtctl.
//
// Configuration is loaded from several sources and merged in order, with
// later sources overriding earlier ones:
//
//  1. Built-in defaults
//  2. User configuration (~/.config/mtctl/config.yaml)
//  3. Project configuration (./.mtctl/config.yaml)
//  4. A file passed with --config
//  5. MTCTL_* environment variables, after loading ./.env
//
// # Configuration Structure
//
//	paths:
//	  rootDir: tests/manual-tests
//	  testCasesDir: tests/manual-tests/test-cases     # optional
//	  resultsDir: tests/manual-tests/test-results     # optional
//	generator:
//	  idStrategy: sequential   # sequential, timestamp or random
//	server:
//	  transport: stdio         # stdio or sse
//	  host: localhost
//	  port: 8090
//	logLevel: info
//
// # Environment Variables
//
//   - MTCTL_ROOT_DIR overrides paths.rootDir
//   - MTCTL_ID_STRATEGY overrides generator.idStrategy
//   - MTCTL_TRANSPORT, MTCTL_HOST and MTCTL_PORT override the server section
//   - MTCTL_LOG_LEVEL overrides logLevel
//
// # Usage Example
//
//	cfg, err := config.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Paths.TestCasesPath())
package config
