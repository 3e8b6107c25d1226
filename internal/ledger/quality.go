package ledger

type Quality uint

const (
	QualityUnrecorded Quality = iota
	QualityPoor
	QualityFair
	QualityGood
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "unrecorded"
	}
}

// QualityOf classifies hours of sleep. Zero, negative and NaN values are
// treated as not recorded.
func QualityOf(hours float64) Quality {
	switch {
	case hours >= 7:
		return QualityGood
	case hours >= 5:
		return QualityFair
	case hours > 0:
		return QualityPoor
	default:
		return QualityUnrecorded
	}
}
