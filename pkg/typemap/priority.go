package typemap

import (
	"regexp"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// priorityPatterns are matched against label text in severity order so
// that a label set carrying several signals resolves to the strongest.
var priorityPatterns = []struct {
	re       *regexp.Regexp
	priority workitem.Priority
}{
	{regexp.MustCompile(`(?i)critical|urgent|p0`), workitem.PriorityCritical},
	{regexp.MustCompile(`(?i)high|p1`), workitem.PriorityHigh},
	{regexp.MustCompile(`(?i)medium|p2`), workitem.PriorityMedium},
	{regexp.MustCompile(`(?i)low|p3`), workitem.PriorityLow},
}

// PriorityFromLabels infers a canonical priority from label text.
// Returns the empty priority when no label carries a signal.
func PriorityFromLabels(labels []string) workitem.Priority {
	for _, p := range priorityPatterns {
		for _, label := range labels {
			if p.re.MatchString(label) {
				return p.priority
			}
		}
	}
	return ""
}

// priorityRanks maps canonical priorities to the numeric priority
// field Azure DevOps uses (1 is most urgent).
var priorityRanks = map[workitem.Priority]int{
	workitem.PriorityCritical: 1,
	workitem.PriorityHigh:     2,
	workitem.PriorityMedium:   3,
	workitem.PriorityLow:      4,
}

// PriorityRank converts a canonical priority to its numeric form;
// ok is false for the empty priority.
func PriorityRank(p workitem.Priority) (int, bool) {
	rank, ok := priorityRanks[p]
	return rank, ok
}

// PriorityFromRank converts a numeric priority back to canonical form.
func PriorityFromRank(rank int) workitem.Priority {
	switch rank {
	case 1:
		return workitem.PriorityCritical
	case 2:
		return workitem.PriorityHigh
	case 3:
		return workitem.PriorityMedium
	case 4:
		return workitem.PriorityLow
	}
	return ""
}
