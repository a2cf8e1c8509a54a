package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pensionadvisor/internal/pension"
)

// PensionRepo reads pension_data rows through a pgx pool. It implements
// pension.Reader.
type PensionRepo struct {
	Pool *pgxpool.Pool
}

const pensionSelectColumns = `
	user_id, age, gender, country, employment_status, marital_status,
	number_of_dependents, education_level, health_status, life_expectancy_estimate,
	home_ownership_status, annual_income, current_savings, debt_level,
	monthly_expenses, savings_rate, contribution_amount, contribution_frequency,
	employer_contribution, total_annual_contribution, retirement_age_goal,
	years_contributed, pension_type, investment_type, fund_name,
	projected_pension_amount, expected_annual_payout, inflation_adjusted_payout,
	years_of_payout, survivor_benefits, withdrawal_strategy, risk_tolerance,
	volatility, portfolio_diversity_score, annual_return_rate, fees_percentage,
	investment_experience_level, financial_goals, insurance_coverage,
	tax_benefits_eligibility, government_pension_eligibility,
	private_pension_eligibility, transaction_id, transaction_amount,
	transaction_date, suspicious_flag, anomaly_score, geo_location, ip_address,
	device_id, transaction_channel, time_of_transaction, transaction_pattern_score,
	previous_fraud_flag, account_age`

// Read implements pension.Reader.
func (s *PensionRepo) Read(ctx context.Context, userID int) (pension.Record, error) {
	row := s.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM pension_data WHERE user_id = $1`, pensionSelectColumns), userID)

	var r pension.Record
	var pensionType, riskTolerance string
	err := row.Scan(
		&r.UserID, &r.Age, &r.Gender, &r.Country, &r.EmploymentStatus, &r.MaritalStatus,
		&r.NumberOfDependents, &r.EducationLevel, &r.HealthStatus, &r.LifeExpectancyEstimate,
		&r.HomeOwnershipStatus, &r.AnnualIncome, &r.CurrentSavings, &r.DebtLevel,
		&r.MonthlyExpenses, &r.SavingsRate, &r.ContributionAmount, &r.ContributionFrequency,
		&r.EmployerContribution, &r.TotalAnnualContribution, &r.RetirementAgeGoal,
		&r.YearsContributed, &pensionType, &r.InvestmentType, &r.FundName,
		&r.ProjectedPensionAmount, &r.ExpectedAnnualPayout, &r.InflationAdjustedPayout,
		&r.YearsOfPayout, &r.SurvivorBenefits, &r.WithdrawalStrategy, &riskTolerance,
		&r.Volatility, &r.PortfolioDiversityScore, &r.AnnualReturnRate, &r.FeesPercentage,
		&r.InvestmentExperienceLevel, &r.FinancialGoals, &r.InsuranceCoverage,
		&r.TaxBenefitsEligibility, &r.GovernmentPensionEligibility,
		&r.PrivatePensionEligibility, &r.TransactionID, &r.TransactionAmount,
		&r.TransactionDate, &r.SuspiciousFlag, &r.AnomalyScore, &r.GeoLocation, &r.IPAddress,
		&r.DeviceID, &r.TransactionChannel, &r.TimeOfTransaction, &r.TransactionPatternScore,
		&r.PreviousFraudFlag, &r.AccountAge,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return pension.Record{}, pension.ErrNotFound
		}
		return pension.Record{}, fmt.Errorf("read pension record %d: %w", userID, err)
	}
	r.PensionType = pension.PensionType(pensionType)
	r.RiskTolerance = pension.RiskTolerance(riskTolerance)
	return r, nil
}

// AllRecords streams every pension record for the regulator-only aggregation
// tools. Those tools never run per-user scoping, so this method intentionally
// bypasses the resolver — callers (internal/tools) are responsible for
// checking the caller's role before invoking it.
func (s *PensionRepo) AllRecords(ctx context.Context) ([]pension.Record, error) {
	rows, err := s.Pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM pension_data`, pensionSelectColumns))
	if err != nil {
		return nil, fmt.Errorf("list pension records: %w", err)
	}
	defer rows.Close()

	var out []pension.Record
	for rows.Next() {
		var r pension.Record
		var pensionType, riskTolerance string
		if err := rows.Scan(
			&r.UserID, &r.Age, &r.Gender, &r.Country, &r.EmploymentStatus, &r.MaritalStatus,
			&r.NumberOfDependents, &r.EducationLevel, &r.HealthStatus, &r.LifeExpectancyEstimate,
			&r.HomeOwnershipStatus, &r.AnnualIncome, &r.CurrentSavings, &r.DebtLevel,
			&r.MonthlyExpenses, &r.SavingsRate, &r.ContributionAmount, &r.ContributionFrequency,
			&r.EmployerContribution, &r.TotalAnnualContribution, &r.RetirementAgeGoal,
			&r.YearsContributed, &pensionType, &r.InvestmentType, &r.FundName,
			&r.ProjectedPensionAmount, &r.ExpectedAnnualPayout, &r.InflationAdjustedPayout,
			&r.YearsOfPayout, &r.SurvivorBenefits, &r.WithdrawalStrategy, &riskTolerance,
			&r.Volatility, &r.PortfolioDiversityScore, &r.AnnualReturnRate, &r.FeesPercentage,
			&r.InvestmentExperienceLevel, &r.FinancialGoals, &r.InsuranceCoverage,
			&r.TaxBenefitsEligibility, &r.GovernmentPensionEligibility,
			&r.PrivatePensionEligibility, &r.TransactionID, &r.TransactionAmount,
			&r.TransactionDate, &r.SuspiciousFlag, &r.AnomalyScore, &r.GeoLocation, &r.IPAddress,
			&r.DeviceID, &r.TransactionChannel, &r.TimeOfTransaction, &r.TransactionPatternScore,
			&r.PreviousFraudFlag, &r.AccountAge,
		); err != nil {
			return nil, fmt.Errorf("scan pension record: %w", err)
		}
		r.PensionType = pension.PensionType(pensionType)
		r.RiskTolerance = pension.RiskTolerance(riskTolerance)
		out = append(out, r)
	}
	return out, rows.Err()
}
