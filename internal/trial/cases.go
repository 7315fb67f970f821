package trial

// Case is one fixed task instance. Expected applies to math cases and
// ExpectedRows to SQL cases; either may be nil when no check is wanted.
type Case struct {
	Prompt       string   `yaml:"prompt" json:"prompt"`
	Expected     *float64 `yaml:"expected,omitempty" json:"expected,omitempty"`
	ExpectedRows *int     `yaml:"expected_rows,omitempty" json:"expected_rows,omitempty"`
}

// MathCase builds a math case with an expected value.
func MathCase(prompt string, expected float64) Case {
	return Case{Prompt: prompt, Expected: &expected}
}

// SQLCase builds a SQL case with an expected row count.
func SQLCase(prompt string, rows int) Case {
	return Case{Prompt: prompt, ExpectedRows: &rows}
}

// DefaultMathCases returns the built-in arithmetic catalog.
func DefaultMathCases() []Case {
	return []Case{
		MathCase("add four plus four", 8),
		MathCase("seven times three plus one", 22),
		MathCase("open parenthesis ten minus six close parenthesis times five", 20),
		MathCase("twenty divided by four plus two", 7),
	}
}

// DefaultSQLCases returns the built-in SQL catalog.
func DefaultSQLCases() []Case {
	return []Case{
		// simple condition with LIMIT
		SQLCase("30歳を超える利用者の一覧が欲しいです。idとnameだけ、最大3件でお願いします。", 3),
		// OR/AND with parentheses
		SQLCase("居住地が東京または京都、かつ年齢が33歳以上の人のidとnameをください（上限10件）。", 2),
		// NOT
		SQLCase("東京在住は除外し、30歳未満のユーザーを探してください。全てのカラムで、10件まで。", 2),
		// JOIN with a numeric condition
		SQLCase("注文データと結合して、金額が100より大きい注文について、ユーザー名と金額を5件ほど見たいです。", 5),
		// JOIN with a compound condition
		SQLCase("支払い状態が paid で、金額が150以上の注文に限って、ユーザー名と金額を10件まで取得してください。", 4),
	}
}

// DefaultCases returns the built-in catalog for f.
func DefaultCases(f Family) []Case {
	if f == FamilySQL {
		return DefaultSQLCases()
	}
	return DefaultMathCases()
}
