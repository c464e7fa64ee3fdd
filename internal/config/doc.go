// Package config provides configuration parsing for cubic projects.
//
// The configuration is stored in cubic.json at the project root. Values from
// a .env file next to it and from CUBIC_* environment variables override the
// file, so deployments can retarget paths and the manifest bucket without
// editing JSON.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "paths": {
//	    "source": "src",
//	    "sites": "src/sites",
//	    "endpoints": "endpoints.json",
//	    "public": "public"
//	  },
//	  "endpoint": {
//	    "parent": "cubic/ui/endpoint"
//	  },
//	  "client": {
//	    "apiUrl": "http://localhost:3003",
//	    "authUrl": "http://localhost:3030"
//	  },
//	  "prefetch": {
//	    "timeout": "10s"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "dev": {
//	    "watch": true,
//	    "debounce": "100ms",
//	    "reload": true
//	  },
//	  "manifest": {
//	    "bucket": "shop-routes",
//	    "key": "endpoints.json",
//	    "region": "eu-central-1"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  }
//	}
//
// # Environment Overrides
//
//	CUBIC_PATHS_SOURCE=/srv/app/src
//	CUBIC_PREFETCH_TIMEOUT=3s
//	CUBIC_SERVER_PORT=8080
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Sites:", cfg.SitesPath())
package config
