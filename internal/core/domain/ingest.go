package domain

// IngestReport summarises one ingestion batch.
type IngestReport struct {
	// Created is the number of components persisted for the first time.
	Created int

	// Updated is the number of existing components re-analysed and
	// overwritten (force reanalysis).
	Updated int

	// Skipped is the number of components left unchanged because they were
	// already analysed and reanalysis was not forced.
	Skipped int

	// Escalated is the number of components stored with the review flag set.
	Escalated int

	// Failed is the number of components whose persistence failed. Failures
	// are also surfaced through the returned error.
	Failed int
}

// Processed returns the number of components that reached the store.
func (r IngestReport) Processed() int {
	return r.Created + r.Updated
}
