package registry

// Media types for datasets stored in an OCI image layout.
const (
	// ArtifactType identifies simulated datasets as an OCI 1.1 artifact type.
	ArtifactType = "application/vnd.simbids.dataset.v1+json"

	// MediaTypeArchive is the layer media type for zipped subject or session archives.
	MediaTypeArchive = "application/vnd.simbids.archive.v1+zip"

	// MediaTypeFile is the layer media type for any other dataset file.
	MediaTypeFile = "application/vnd.simbids.file.v1"
)
