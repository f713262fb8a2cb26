package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "releaseregistry"

	metricLabelRoute  = "route"
	metricLabelStatus = "status"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// ServiceRequestCounter count the number of requests for each route
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each route",
		metricLabelRoute, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each route
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to parse a request, execute the workflow and encode its response",
		metricLabelRoute, metricLabelStatus,
	)
	// ReleasesCreatedCounter count the number of successfully created releases
	ReleasesCreatedCounter = newCounterVec(
		"releases_created_count",
		"Number of releases that were successfully created",
	)
	// ReleasesDeletedCounter count the number of deleted releases
	ReleasesDeletedCounter = newCounterVec(
		"releases_deleted_count",
		"Number of releases that were deleted",
	)
	// UploadedObjectsCounter count the objects written to the object store
	UploadedObjectsCounter = newCounterVec(
		"uploaded_objects_count",
		"Number of release files written to the object store",
	)
	// DeletedObjectsCounter count the objects removed from the object store
	DeletedObjectsCounter = newCounterVec(
		"deleted_objects_count",
		"Number of release files removed from the object store",
	)
	// OrphanedObjectsCounter count objects left behind without metadata
	OrphanedObjectsCounter = newCounterVec(
		"orphaned_objects_count",
		"Number of objects left in the object store without a release record",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
