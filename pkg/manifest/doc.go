// Package manifest reads and writes endpoint manifests.
//
// A manifest is a JSON or YAML list of endpoint descriptors. Loaded
// manifests seed the explicit endpoints of route discovery; exports write
// the discovered table so deployments can inspect or pin it:
//
//	- route: /about
//	  file: endpoints/about
//	- route: /blog/:id
//	  view: sites/blog/[id].vue
//	  file: cubic/ui/endpoint
//
// Manifests live on the local file system (FileStore) or in an S3 bucket
// (S3Store). Both implement endpoint.Loader.
package manifest
