// Package ckanta automates routine management operations against CKAN data
// portals: listing and showing datasets, groups, organizations and users,
// checking a user's memberships, dumping records to CSV and creating records
// in bulk from CSV fixture files.
//
// Operations run through a Service, which issues CKAN action calls through a
// Caller (normally a *ckan.Client):
//
//	client, err := ckan.New(&ckan.Config{URLBase: inst.URLBase, APIKey: inst.APIKey})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc, err := ckanta.New(client)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.List(ctx, ckanta.ListOptions{Object: ckanta.Organization})
//
// # Objects
//
// Every operation targets one of the CKAN object kinds: dataset, group,
// organization or user. Datasets are called packages by the CKAN API, so the
// dataset kind maps onto the package_* actions.
//
// # Uploads
//
// Upload reads a CSV file with a header row and creates one record per row.
// Dataset rows can be fanned out over several owner organizations, in which
// case titles are prefixed with the state name taken from the
// national-states setting unless the organization name carries the
// "national:" prefix.
package ckanta
