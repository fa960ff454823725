// Curator is a batch document-lifecycle pipeline for managed-content
// repositories.
//
// It harvests documents by search or by a driving worksheet, classifies
// them against a retention state machine, and either exports their
// content and metadata or deletes them, producing an auditable report per
// run.
//
// Usage:
//
//	# Simulate a worksheet-driven purge (dry run is the default)
//	curator purge --worksheet refs.csv
//
//	# Execute the purge with auto-archive rescue enabled
//	curator purge --worksheet refs.csv --execute --auto-archive
//
//	# Export up to 500 PDF documents matching a keyword
//	curator export --keyword invoice --mimetype application/pdf --max-docs 500
//
//	# Run the scheduled retention sweep
//	curator sweep
//
//	# Validate configuration and retention policy
//	curator validate
package main

func main() {
	Execute()
}
