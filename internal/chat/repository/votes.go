package repository

import (
	"focushub/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toggleVotePipeline one update stage: voter leaves the opposite set and flips
// membership of the requested one, evaluated against the stored document
func toggleVotePipeline(voter string, dir domain.VoteDirection) mongo.Pipeline {
	same, opposite := dir.Fields()
	// a bare string starting with $ would be read as a field path
	v := bson.D{{Key: "$literal", Value: voter}}
	sameSet := bson.D{{Key: "$ifNull", Value: bson.A{"$" + same, bson.A{}}}}
	oppositeSet := bson.D{{Key: "$ifNull", Value: bson.A{"$" + opposite, bson.A{}}}}
	without := func(set bson.D) bson.D {
		return bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: set},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", v}}}},
		}}}
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: opposite, Value: without(oppositeSet)},
			{Key: same, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{v, sameSet}}},
				without(sameSet),
				bson.D{{Key: "$concatArrays", Value: bson.A{sameSet, bson.A{v}}}},
			}}}},
		}}},
	}
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
