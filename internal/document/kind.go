package document

// Kind is the type of a parliamentary document.
type Kind int

const (
	KindOther Kind = iota
	KindReport
	KindMotion
	KindAmendment
	KindDeclaration
	KindResolution
	KindOpinion
	KindDecision
	KindRecommendation
	KindCommunication
	KindStatement
)

func (k Kind) String() string {
	switch k {
	case KindReport:
		return "report"
	case KindMotion:
		return "motion"
	case KindAmendment:
		return "amendment"
	case KindDeclaration:
		return "declaration"
	case KindResolution:
		return "resolution"
	case KindOpinion:
		return "opinion"
	case KindDecision:
		return "decision"
	case KindRecommendation:
		return "recommendation"
	case KindCommunication:
		return "communication"
	case KindStatement:
		return "statement"
	default:
		return "other"
	}
}

// Classify derives the kind from the document id: A-series ids are reports,
// B-series ids are motions for resolutions.
func Classify(id string) Kind {
	if id == "" {
		return KindOther
	}
	switch id[0] {
	case 'A':
		return KindReport
	case 'B':
		return KindMotion
	default:
		return KindOther
	}
}
