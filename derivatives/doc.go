// Package derivatives prepares and queries derivative datasets built on top
// of a simulated raw dataset.
//
// [WriteDescription] writes the dataset_description.json of a derivative
// dataset, [LoadQuerySpec] reads named entity queries from a JSON spec and
// [Collect] resolves them against a layout index.
package derivatives
