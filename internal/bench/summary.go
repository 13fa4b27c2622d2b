package bench

// executiveSummary derives one headline finding per tier present.
func executiveSummary(tiers []TierReport) []Finding {
	var findings []Finding
	for _, t := range tiers {
		last := len(t.Measurements) - 1
		if last < 1 {
			continue
		}
		f := Finding{
			Tier:           t.Tier,
			Value:          t.Overhead(last),
			Unit:           "%",
			MemoryOverhead: t.MemoryOverhead(last),
		}
		switch t.Tier {
		case TierComparison:
			f.Label = "Optimized chain vs traditional"
		case Tier1:
			f.Label = "Framework overhead"
		case Tier2:
			f.Label = "Abstraction overhead"
		case Tier3:
			f.Label = "Middleware cost per layer"
			f.Value = t.CostPerLayer(last)
			f.Unit = "µs"
		case Tier4:
			f.Label = "Real-world overhead"
		default:
			continue
		}
		findings = append(findings, f)
	}
	return findings
}
