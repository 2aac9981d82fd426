// Package config loads sparkle CLI configuration.
//
// Configuration lives in sparkle.json, sparkle.yaml or sparkle.yml in the
// working directory. Missing files mean defaults.
//
// # Configuration File Structure
//
//	{
//	  "app": "todo",
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "persistence": {
//	    "backend": "file",
//	    "dir": ".sparkle",
//	    "saveDelay": "50ms"
//	  },
//	  "decoration": {
//	    "maxRedecorateDepth": 32,
//	    "maxEffectDepth": 1024
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "sparkle"
//	  }
//	}
//
// The same structure in YAML:
//
//	app: todo
//	persistence:
//	  backend: s3
//	  s3:
//	    bucket: my-bucket
//	    prefix: sparkle/
//	    region: us-east-1
//	    endpoint: http://localhost:9000
//	    pathStyle: true
package config
