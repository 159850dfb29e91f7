package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventbase/server/internal/domain/events"
)

// buildListFilter translates list parameters into a find/count predicate.
// The base filter always restricts to active documents; date bounds and tag
// intersection are layered on top when present.
func buildListFilter(params events.ListParams) bson.M {
	filter := bson.M{"is_active": true}

	if params.DateFrom != nil || params.DateTo != nil {
		dateRange := bson.M{}
		if params.DateFrom != nil {
			dateRange["$gte"] = *params.DateFrom
		}
		if params.DateTo != nil {
			dateRange["$lte"] = *params.DateTo
		}
		filter["date"] = dateRange
	}

	if len(params.Tags) > 0 {
		filter["tags"] = bson.M{"$in": params.Tags}
	}

	return filter
}

// listFindOptions fixes the sort at ascending event date and applies the
// page window. Page/limit bounds are enforced upstream.
func listFindOptions(params events.ListParams) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetSkip(params.Skip()).
		SetLimit(int64(params.Limit))
}
