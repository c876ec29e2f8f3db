package domain

import (
	"context"
	"log/slog"
	"sort"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// MutationStreamer fans mutant generation out over workers and hands back a
// stable ordering so shards agree across processes.
type MutationStreamer interface {
	Get(ctx context.Context, sources []m.Source, threads int, opts MutationOptions) ([]m.Mutant, error)
	ShardMutants(mutants []m.Mutant, shardIndex, totalShardCount int) []m.Mutant
}

type mutationStreamer struct {
	Mutagen
}

// NewMutationStreamer creates a new MutationStreamer instance with the provided dependencies.
func NewMutationStreamer(mutagen Mutagen) MutationStreamer {
	return &mutationStreamer{
		Mutagen: mutagen,
	}
}

// Get generates the mutants of sources with up to threads workers, ordered by
// listing path, method and ordinal.
func (ms *mutationStreamer) Get(ctx context.Context, sources []m.Source, threads int, opts MutationOptions) ([]m.Mutant, error) {
	slog.Debug("Starting mutant streaming", "sources", len(sources), "threads", threads)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sourceCh := make(chan m.Source)

	go func() {
		defer close(sourceCh)

		for _, source := range sources {
			select {
			case <-ctx.Done():
				return
			case sourceCh <- source:
			}
		}
	}()

	mutantCh, errCh := ms.StreamMutants(ctx, sourceCh, threads, opts)

	var mutants []m.Mutant
	for mutant := range mutantCh {
		mutants = append(mutants, mutant)
	}

	if err := <-errCh; err != nil {
		slog.Error("Failed to generate mutants", "error", err)
		return nil, err
	}

	sortMutants(mutants)

	slog.Debug("Generated mutants", "count", len(mutants))

	return mutants, nil
}

func sortMutants(mutants []m.Mutant) {
	sort.SliceStable(mutants, func(i, j int) bool {
		a, b := mutants[i], mutants[j]

		pa, pb := sourcePath(a.Source), sourcePath(b.Source)
		if pa != pb {
			return pa < pb
		}

		ra, rb := a.Method.String(), b.Method.String()
		if ra != rb {
			return ra < rb
		}

		return a.Identifier.Ordinal < b.Identifier.Ordinal
	})
}

func sourcePath(source m.Source) string {
	if source.Origin == nil {
		return ""
	}

	return string(source.Origin.FullPath)
}

// ShardMutants keeps every totalShardCount-th mutant starting at shardIndex.
// A non-positive totalShardCount disables sharding.
func (ms *mutationStreamer) ShardMutants(mutants []m.Mutant, shardIndex, totalShardCount int) []m.Mutant {
	if totalShardCount <= 1 {
		return mutants
	}

	slog.Debug("Sharding mutants", "shardIndex", shardIndex, "totalShardCount", totalShardCount)

	shard := make([]m.Mutant, 0, len(mutants)/totalShardCount+1)

	for i, mutant := range mutants {
		if i%totalShardCount == shardIndex {
			shard = append(shard, mutant)
		}
	}

	return shard
}
