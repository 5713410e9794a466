// Package ckan provides an HTTP client for calling CKAN action API endpoints.
//
// Every CKAN operation is an "action" exposed under a common path prefix
// (api/3/action by default). The client authenticates with the instance API
// key, sends read actions as GET requests with query parameters or as POST
// requests with a JSON body, and decodes the standard response envelope:
//
//	{"help": "...", "success": true, "result": ...}
//
// # Basic Usage
//
//	client, err := ckan.New(&ckan.Config{
//		URLBase: "http://localhost:5000",
//		APIKey:  "29dc8b28d78g923basd43w",
//	}, ckan.WithRateLimit(5))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Get(ctx, "group_list", map[string]any{"all_fields": false})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var names []string
//	if err := resp.Decode(&names); err != nil {
//		log.Fatal(err)
//	}
//
// # Errors
//
// Failed actions are reported as *APIError values. Use errors.Is with the
// sentinel values to check for common conditions:
//
//	if errors.Is(err, ckan.ErrNotFound) {
//		// object does not exist
//	}
package ckan
