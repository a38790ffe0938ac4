package rules

// Registry returns every built-in rule in presentation order.
func Registry() []Rule {
	return []Rule{
		RequiredChapters(),
		TableOfContentsExists(),

		HeadingHierarchy(),
		HeadingDepth(),

		HeadingsNumbered(),
		HeadingNumberingNoGaps(),

		ResearchQuestionExists(),
		ResearchQuestionInIntro(),
		ResearchKeyTermsConsistent(),
		ResearchQuestionInResults(),
		ResearchQuestionInDiscussion(),

		ChapterOrderPlausible(),
		ChapterLengthBalanced(),

		MethodChapterExists(),
		MethodDetailSufficient(),
		ResultsDiscussionSeparated(),

		LiteratureExists(),
		CitationsInReferenceList(),
		NoUncitedReferences(),
		CitationStyleConsistent(),

		ListOfFiguresExists(),
		ListOfTablesExists(),

		FiguresTablesReferenced(),

		ConclusionExists(),
		AbstractExists(),
		IntroHasStructureOverview(),
		AbbreviationsListExists(),
		DefinitionsPresent(),
		CaptionsPresent(),
		CitationDensity(),
		ReferenceYears(),
	}
}

// IDs returns the rule ids in registry order.
func IDs(rs []Rule) []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID()
	}
	return ids
}
