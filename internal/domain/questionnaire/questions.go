package questionnaire

import "bankeu-backend/internal/domain/proposal"

var questions = map[proposal.Authority][QuestionCount]string{
	proposal.AuthorityDepartment: {
		"Activity matches the sector's technical program for the budget year",
		"Technical drawings are attached and legible",
		"Bill of quantities is consistent with the drawings",
		"Unit prices follow the regional standard price list",
		"Requested volume is technically justified",
		"Location is accessible and free of land disputes",
		"Environmental impact has been considered",
		"Construction method is feasible for village-level execution",
		"Materials specification meets minimum technical standards",
		"Maintenance plan after completion is described",
		"Working file contains the signed cost estimate",
		"Activity does not duplicate another funded program",
		"Photographs of the current site condition are attached",
	},
	proposal.AuthoritySubdistrict: {
		"Proposal was decided in the village deliberation forum",
		"Minutes of the village deliberation are attached",
		"Village head statement of responsibility is attached",
		"Activity is listed in the village medium-term plan",
		"Activity is listed in the village annual work plan",
		"Requested amount is within the village allocation ceiling",
		"Village has no outstanding accountability reports",
		"Implementation team decree is attached",
		"Co-funding commitment from the village budget is stated",
		"Land ownership or grant statement is attached",
		"Location was verified in the field by subdistrict staff",
		"Proposal does not overlap neighbouring village activities",
		"Timeline is realistic within the budget year",
	},
	proposal.AuthorityTopBody: {
		"Department technical verification is complete",
		"Subdistrict administrative verification is complete",
		"Activity supports the regency development priorities",
		"Budget amount fits the regency Bankeu ceiling",
		"Village financial administration is compliant",
		"Prior Bankeu disbursements are fully accounted for",
		"Proposal documents are complete and consistent",
		"Budget year matches the current allocation cycle",
		"Village account details are valid for transfer",
		"No audit findings are pending against the village",
		"Reference copy of the working file is available",
		"Activity outputs are measurable",
		"Proposal is recommended for inclusion in the allocation decree",
	},
}

// Questions returns the checklist for a reviewing authority.
func Questions(a proposal.Authority) ([QuestionCount]string, bool) {
	q, ok := questions[a]
	return q, ok
}
