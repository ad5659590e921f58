package model

// TBEI行为面试覆盖的胜任力维度
const (
	CompetencyDigitalTransformation = "digital_transformation"
	CompetencyTalentDevelopment     = "talent_development"
)

// RequiredCompetencies TBEI完成判定所需的胜任力集合
var RequiredCompetencies = []string{
	CompetencyDigitalTransformation,
	CompetencyTalentDevelopment,
}

// QuestionVariantCount 每个胜任力的题目变体数，selected index ∈ [0, QuestionVariantCount-1]
const QuestionVariantCount = 3

func IsRequiredCompetency(id string) bool {
	for _, c := range RequiredCompetencies {
		if c == id {
			return true
		}
	}
	return false
}
