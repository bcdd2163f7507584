package motif

// NumClasses is the full label space: twenty annotated leitmotifs plus the
// reserved "none" class in the last column.
const NumClasses = 21

// NoneLabel marks frames that carry no annotated leitmotif.
const NoneLabel = "none"

// labels is the closed vocabulary of the annotated corpus. The order defines
// the column layout of every ground-truth tensor, so it must never change
// between the conversion run and training.
var labels = [NumClasses]string{
	"Nibelungen",
	"Ring",
	"Nibelungenhass",
	"Mime",
	"Ritt",
	"Waldweben",
	"Waberlohe",
	"Horn",
	"Geschwisterliebe",
	"Schwert",
	"Jugendkraft",
	"Walhall",
	"Riesen",
	"Feuerzauber",
	"Schlafakkorde",
	"Mannen",
	"Vertrag",
	"Unmuth",
	"Siegfried",
	"Liebesbund",
	NoneLabel,
}

// Vocabulary maps leitmotif labels to ground-truth column indices. It is
// immutable after construction; build it once and pass it by reference.
type Vocabulary struct {
	index map[string]int
}

func NewVocabulary() *Vocabulary {
	index := make(map[string]int, NumClasses)
	for i, label := range labels {
		index[label] = i
	}

	return &Vocabulary{index: index}
}

// Index returns the column index for a label.
func (v *Vocabulary) Index(label string) (int, bool) {
	idx, ok := v.index[label]
	return idx, ok
}

// Label returns the label at a column index.
func (v *Vocabulary) Label(idx int) (string, bool) {
	if idx < 0 || idx >= NumClasses {
		return "", false
	}

	return labels[idx], true
}

// NoneIndex is the column of the reserved "none" class.
func (v *Vocabulary) NoneIndex() int {
	return NumClasses - 1
}

func (v *Vocabulary) Size() int {
	return NumClasses
}
