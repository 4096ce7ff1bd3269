package osc

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/logger"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/models"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/services"
)

// EmitResult summarizes what a batch emission sent downstream
type EmitResult struct {
	Clips    []models.ClipDescriptor
	Notes    int
	Commands int
}

// Emitter turns parsed segments into clip-lifecycle and note commands
type Emitter struct {
	transport Transport
}

// NewEmitter creates an emitter writing to transport
func NewEmitter(transport Transport) *Emitter {
	return &Emitter{transport: transport}
}

// SetTempo pushes the song tempo
func (e *Emitter) SetTempo(ctx context.Context, bpm int) error {
	if err := e.transport.Send(ctx, SetTempo(bpm)); err != nil {
		return fmt.Errorf("set tempo: %w", err)
	}
	logger.Info("🥁 Tempo set", logger.Fields{"bpm": bpm})
	return nil
}

// EmitBatch materializes segments on consecutive tracks starting at baseIndex.
// Segments are sent strictly one after another, never interleaved.
func (e *Emitter) EmitBatch(ctx context.Context, baseIndex int, segments []models.Segment) (EmitResult, error) {
	var result EmitResult

	for i, segment := range segments {
		clip, sent, err := e.EmitSegment(ctx, baseIndex+i, segment)
		result.Commands += sent
		if err != nil {
			return result, err
		}
		result.Clips = append(result.Clips, clip)
		result.Notes += len(segment.Rows)
	}

	return result, nil
}

// EmitSegment replaces the clip on trackIndex with the segment's notes:
// delete the old clip, create one of the full pattern length, then add each note
// at the running pointer. It sends exactly 2+len(rows) commands and returns how
// many went out before any error.
func (e *Emitter) EmitSegment(ctx context.Context, trackIndex int, segment models.Segment) (models.ClipDescriptor, int, error) {
	// The clip length must exist before any note can be placed in it
	clip, ok := services.ClipFor(trackIndex, segment)
	if !ok {
		return models.ClipDescriptor{}, 0, fmt.Errorf("segment %q has no rows", segment.Flag)
	}

	commands := make([]Command, 0, len(segment.Rows)+2)
	commands = append(commands,
		DeleteClip(trackIndex),
		CreateClip(trackIndex, clip.Length),
	)

	pointers := services.NotePointers(segment.Rows)
	for i, row := range segment.Rows {
		commands = append(commands, AddNote(trackIndex, row.Pitch, pointers[i], row.Duration, row.Velocity))
	}

	for sent, cmd := range commands {
		if err := e.transport.Send(ctx, cmd); err != nil {
			return clip, sent, fmt.Errorf("segment %q on track %d: %w", segment.Flag, trackIndex, err)
		}
	}

	logger.Debug("Clip materialized", logger.Fields{
		"flag":   string(segment.Flag),
		"track":  trackIndex,
		"length": clip.Length,
		"notes":  len(segment.Rows),
	})
	return clip, len(commands), nil
}
