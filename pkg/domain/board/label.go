package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// DefaultLabelColors are seeded onto every new board.
var DefaultLabelColors = []string{
	"#61bd4f", "#f2d600", "#ff9f1a", "#eb5a46", "#c377e0", "#0079bf",
}

// Label represents a board-scoped label. Cards on the board may carry
// any subset of its labels.
type Label struct {
	id        shared.ID
	boardID   shared.ID
	name      string
	color     string
	createdAt time.Time
}

// NewLabel creates a new Label entity.
func NewLabel(boardID shared.ID, name, color string) (*Label, error) {
	if boardID.IsZero() {
		return nil, fmt.Errorf("%w: boardID is required", shared.ErrValidation)
	}
	if color == "" {
		return nil, fmt.Errorf("%w: color is required", shared.ErrValidation)
	}

	return &Label{
		id:        shared.NewID(),
		boardID:   boardID,
		name:      name,
		color:     color,
		createdAt: time.Now().UTC(),
	}, nil
}

// DefaultLabels builds the default label set for a new board.
func DefaultLabels(boardID shared.ID) []*Label {
	labels := make([]*Label, 0, len(DefaultLabelColors))
	for _, color := range DefaultLabelColors {
		l, err := NewLabel(boardID, "", color)
		if err != nil {
			continue
		}
		labels = append(labels, l)
	}
	return labels
}

// ReconstituteLabel recreates a Label from persistence.
func ReconstituteLabel(id, boardID shared.ID, name, color string, createdAt time.Time) *Label {
	return &Label{
		id:        id,
		boardID:   boardID,
		name:      name,
		color:     color,
		createdAt: createdAt,
	}
}

// ID returns the label ID.
func (l *Label) ID() shared.ID {
	return l.id
}

// BoardID returns the owning board ID.
func (l *Label) BoardID() shared.ID {
	return l.boardID
}

// Name returns the label name (may be empty).
func (l *Label) Name() string {
	return l.name
}

// Color returns the label color.
func (l *Label) Color() string {
	return l.color
}

// CreatedAt returns when the label was created.
func (l *Label) CreatedAt() time.Time {
	return l.createdAt
}

// Update changes the label name and color.
func (l *Label) Update(name, color string) error {
	if color == "" {
		return fmt.Errorf("%w: color is required", shared.ErrValidation)
	}
	l.name = name
	l.color = color
	return nil
}
