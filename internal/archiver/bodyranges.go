package archiver

import (
	"math"

	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
)

var styleToWire = map[models.Style]wire.Style{
	models.StyleBold:          wire.StyleBold,
	models.StyleItalic:        wire.StyleItalic,
	models.StyleSpoiler:       wire.StyleSpoiler,
	models.StyleStrikethrough: wire.StyleStrikethrough,
	models.StyleMonospace:     wire.StyleMonospace,
}

var styleFromWire = map[wire.Style]models.Style{
	wire.StyleBold:          models.StyleBold,
	wire.StyleItalic:        models.StyleItalic,
	wire.StyleSpoiler:       models.StyleSpoiler,
	wire.StyleStrikethrough: models.StyleStrikethrough,
	wire.StyleMonospace:     models.StyleMonospace,
}

// allStyles is the union of every known style bit.
const allStyles = models.StyleBold | models.StyleItalic | models.StyleSpoiler |
	models.StyleStrikethrough | models.StyleMonospace

// archiveText emits body and ranges. A bad range is dropped with a
// recoverable error; the text itself always survives.
func archiveText(body string, ranges models.BodyRanges, id uuid.UUID) result.Result[*wire.Text, *ArchiveFrameError] {
	var errs archiveErrors
	text := &wire.Text{Body: body}

	for _, m := range ranges.Mentions {
		if m.Aci == uuid.Nil {
			errs = append(errs, newArchiveError(ArchiveErrorInvalidMessageAddress, id))
			continue
		}
		start, length, ok := wireSpan(m.Start, m.Length)
		if !ok {
			errs = append(errs, newArchiveError(ArchiveErrorInvalidBodyRange, id))
			continue
		}
		aci := m.Aci
		text.BodyRanges = append(text.BodyRanges, &wire.BodyRange{
			Start:      start,
			Length:     length,
			MentionAci: aci[:],
		})
	}

	for _, s := range ranges.Styles {
		if s.Style == 0 || s.Style&^allStyles != 0 {
			errs = append(errs, newArchiveError(ArchiveErrorUnrecognizedBodyRangeStyle, id))
			continue
		}
		start, length, ok := wireSpan(s.Start, s.Length)
		if !ok {
			errs = append(errs, newArchiveError(ArchiveErrorInvalidBodyRange, id))
			continue
		}
		// One wire range per style bit.
		for _, bit := range models.Styles {
			if !s.Style.Has(bit) {
				continue
			}
			text.BodyRanges = append(text.BodyRanges, &wire.BodyRange{
				Start:  start,
				Length: length,
				Style:  styleToWire[bit],
			})
		}
	}

	return result.Fold(text, errs)
}

// wireSpan converts a local range to wire offsets. ok is false when either
// value is negative or does not fit in 32 bits.
func wireSpan(start, length int) (uint32, uint32, bool) {
	if start < 0 || length < 0 || int64(start) > math.MaxUint32 || int64(length) > math.MaxUint32 {
		return 0, 0, false
	}
	return uint32(start), uint32(length), true
}

// restoreText maps wire text back to body and ranges. Ranges sharing the same
// span are merged into one style set.
func restoreText(text *wire.Text, id ChatItemID) result.Result[restoredText, *RestoreFrameError] {
	var errs restoreErrors
	out := restoredText{Body: text.Body}

	type span struct{ start, length int }
	merged := make(map[span]int)

	for _, r := range text.BodyRanges {
		sp := span{int(r.Start), int(r.Length)}

		if r.MentionAci != nil {
			aci, err := uuid.FromBytes(r.MentionAci)
			if err != nil || aci == uuid.Nil {
				errs = append(errs, invalidProtoData(ProtoDataInvalidAci, id))
				continue
			}
			out.Ranges.Mentions = append(out.Ranges.Mentions, models.Mention{Start: sp.start, Length: sp.length, Aci: aci})
			continue
		}

		if r.Style == wire.StyleNone {
			errs = append(errs, invalidProtoData(ProtoDataBodyRangeMissingPayload, id))
			continue
		}
		style, ok := styleFromWire[r.Style]
		if !ok {
			errs = append(errs, invalidProtoData(ProtoDataUnrecognizedBodyRangeStyle, id))
			continue
		}
		if i, ok := merged[sp]; ok {
			out.Ranges.Styles[i].Style |= style
			continue
		}
		merged[sp] = len(out.Ranges.Styles)
		out.Ranges.Styles = append(out.Ranges.Styles, models.StyleRange{Start: sp.start, Length: sp.length, Style: style})
	}

	out.Ranges.Normalize()
	return result.Fold(out, errs)
}

type restoredText struct {
	Body   string
	Ranges models.BodyRanges
}
