package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Messages understood by WorldActor:
//
//	*timestamppb.Timestamp  advance one tick; the timestamp is when the frame asked for it
//	*emptypb.Empty          reply with the current flock.Stats as a *structpb.Struct

// NewTick returns the message that advances the world by one step.
func NewTick() *timestamppb.Timestamp {
	return timestamppb.Now()
}

// NewStatsRequest returns the message to Ask the world for its stats.
func NewStatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// statsToProto packs s for the Ask reply.
func statsToProto(s flock.Stats) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		"tick":          s.Tick,
		"population":    s.Population,
		"meanSpeed":     s.MeanSpeed,
		"maxSpeed":      s.MaxSpeed,
		"meanNeighbors": s.MeanNeighbors,
		"occupiedCells": s.OccupiedCells,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	return st, nil
}

// StatsFromProto unpacks the reply to a stats request.
func StatsFromProto(st *structpb.Struct) flock.Stats {
	f := st.GetFields()
	return flock.Stats{
		Tick:          uint64(f["tick"].GetNumberValue()),
		Population:    int(f["population"].GetNumberValue()),
		MeanSpeed:     f["meanSpeed"].GetNumberValue(),
		MaxSpeed:      f["maxSpeed"].GetNumberValue(),
		MeanNeighbors: f["meanNeighbors"].GetNumberValue(),
		OccupiedCells: int(f["occupiedCells"].GetNumberValue()),
	}
}
