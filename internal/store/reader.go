package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	yearExpr  = "SUBSTR(lc.date_concours, 7, 4)"
	monthExpr = "SUBSTR(lc.date_concours, 4, 2)"
	dayExpr   = "SUBSTR(lc.date_concours, 1, 2)"

	// date_concours is DD/MM/YYYY text, so recency is sorted piecewise.
	recentFirst = yearExpr + " DESC, " + monthExpr + " DESC, " + dayExpr + " DESC"

	cleanPenalty = "(%[1]s.penalites IN ('0', '0.00', '0,00', '-', '') OR %[1]s.penalites IS NULL)"
	speedMissing = "(%[1]s.vitesse = '-' OR %[1]s.vitesse = '' OR %[1]s.vitesse IS NULL OR %[1]s.vitesse = '0')"
	speedPresent = "(%[1]s.vitesse != '-' AND %[1]s.vitesse != '' AND %[1]s.vitesse IS NOT NULL AND %[1]s.vitesse != '0')"
)

// foreignRegions are regions that are in fact other countries.
var foreignRegions = []string{
	"ETRANGER", "SUISSE", "ESPAGNE", "BELGIQUE", "ALLEMAGNE",
	"ITALIE", "LUXEMBOURG", "PAYS-BAS", "PAYS BAS", "MONACO",
	"ANDORRE", "ROYAUME-UNI", "ANGLETERRE", "PORTUGAL",
}

func cleanRun(alias string) string {
	return "(" + fmt.Sprintf(speedPresent, alias) + " AND " + fmt.Sprintf(cleanPenalty, alias) + ")"
}

func eliminatedRun(alias string) string {
	return fmt.Sprintf(speedMissing, alias)
}

func countWhen(cond string) string {
	return "CAST(COALESCE(SUM(CASE WHEN " + cond + " THEN 1 ELSE 0 END), 0) AS INTEGER)"
}

// reader implements every Store query on top of a backend connection.
type reader struct {
	conn conn
	d    dialect
}

func (s *reader) num(col string) string { return s.d.number(col) }

func (s *reader) query(ctx context.Context, q string, args ...any) (rows, error) {
	return s.conn.query(ctx, s.d.rebind(q), args...)
}

func (s *reader) queryRow(ctx context.Context, q string, args ...any) row {
	return s.conn.queryRow(ctx, s.d.rebind(q), args...)
}

// rawText mirrors how the results were stringified upstream: a NULL column
// reads as the literal "None".
func rawText(ns sql.NullString) string {
	if !ns.Valid {
		return "None"
	}
	return ns.String
}

func nullText(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func (s *reader) Overview(ctx context.Context) (*Overview, error) {
	o := &Overview{}
	err := s.queryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM resultats),
			(SELECT COUNT(DISTINCT id_concours) FROM liste_concours),
			(SELECT COUNT(DISTINCT nom_chien) FROM resultats),
			(SELECT COUNT(DISTINCT conducteur) FROM resultats)`,
	).Scan(&o.TotalRuns, &o.TotalEvents, &o.TotalDogs, &o.TotalHandlers)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	return o, nil
}

func (s *reader) RecentEvents(ctx context.Context, limit int) ([]RecentEvent, error) {
	rs, err := s.query(ctx, `
		SELECT lc.date_concours, lc.nom_concours, COUNT(r.id_concours) / 3
		FROM liste_concours lc
		LEFT JOIN resultats r ON lc.id_concours = r.id_concours
		GROUP BY lc.id_concours, lc.date_concours, lc.nom_concours
		ORDER BY `+recentFirst+`
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rs.Close()

	var out []RecentEvent
	for rs.Next() {
		var e RecentEvent
		var date, club sql.NullString
		if err := rs.Scan(&date, &club, &e.Participants); err != nil {
			return nil, err
		}
		e.Date, e.Club = nullText(date), nullText(club)
		out = append(out, e)
	}
	return out, rs.Err()
}

func (s *reader) TopBreeds(ctx context.Context, limit int) ([]BreedCount, error) {
	rs, err := s.query(ctx, `
		SELECT race, COUNT(*) AS nb
		FROM resultats
		WHERE race IS NOT NULL AND race != ''
		GROUP BY race
		ORDER BY nb DESC, race
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top breeds: %w", err)
	}
	defer rs.Close()

	var out []BreedCount
	for rs.Next() {
		var b BreedCount
		if err := rs.Scan(&b.Breed, &b.Runs); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rs.Err()
}

func (s *reader) SearchCompetitors(ctx context.Context, q string, limit int) ([]Competitor, error) {
	pattern := "%" + strings.ToUpper(q) + "%"
	rs, err := s.query(ctx, `
		SELECT DISTINCT CAST(id_couple AS TEXT), nom_chien, conducteur, race
		FROM resultats
		WHERE UPPER(nom_chien) LIKE ? OR UPPER(conducteur) LIKE ?
		ORDER BY nom_chien, conducteur
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search competitors: %w", err)
	}
	defer rs.Close()

	var out []Competitor
	for rs.Next() {
		var id string
		var dog, handler, breed sql.NullString
		if err := rs.Scan(&id, &dog, &handler, &breed); err != nil {
			return nil, err
		}
		out = append(out, Competitor{
			ID:      CoupleID(id),
			Dog:     nullText(dog),
			Handler: nullText(handler),
			Breed:   nullText(breed),
		})
	}
	return out, rs.Err()
}

func (s *reader) CoupleYears(ctx context.Context, id CoupleID) ([]string, error) {
	rs, err := s.query(ctx, `
		SELECT DISTINCT `+yearExpr+` AS annee
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE CAST(r.id_couple AS TEXT) = ? AND lc.date_concours IS NOT NULL
		ORDER BY annee DESC`, string(id))
	if err != nil {
		return nil, fmt.Errorf("couple years: %w", err)
	}
	defer rs.Close()
	return scanStrings(rs)
}

// coupleScope builds the shared WHERE clause of the per-couple queries.
func coupleScope(id CoupleID, f ProfileFilter) (string, []any) {
	where := "CAST(r.id_couple AS TEXT) = ?"
	args := []any{string(id)}
	if f.Year != "" {
		where += " AND " + yearExpr + " = ?"
		args = append(args, f.Year)
	}
	if f.Discipline != DisciplineAll {
		where += " AND UPPER(r.nom_epreuve) LIKE UPPER(?)"
		args = append(args, "%"+string(f.Discipline)+"%")
	}
	return where, args
}

func (s *reader) CouplePerformance(ctx context.Context, id CoupleID, f ProfileFilter) (*PerformanceCounts, error) {
	where, args := coupleScope(id, f)
	p := &PerformanceCounts{}
	err := s.queryRow(ctx, `
		SELECT COUNT(r.id), `+countWhen(cleanRun("r"))+`, `+countWhen(eliminatedRun("r"))+`
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE `+where, args...,
	).Scan(&p.Runs, &p.CleanRuns, &p.Eliminated)
	if err != nil {
		return nil, fmt.Errorf("couple performance: %w", err)
	}
	return p, nil
}

func (s *reader) CoupleMonthlySpeed(ctx context.Context, id CoupleID, f ProfileFilter) ([]MonthlySpeed, error) {
	where, args := coupleScope(id, f)
	speed := s.num("r.vitesse")
	rs, err := s.query(ctx, `
		SELECT `+monthExpr+` AS mois, AVG(`+speed+`)
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE `+where+`
		  AND COALESCE(r.qualificatif, '') != 'Eliminé'
		  AND `+speed+` > 0
		GROUP BY `+monthExpr+`
		ORDER BY mois ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("couple monthly speed: %w", err)
	}
	defer rs.Close()

	var out []MonthlySpeed
	for rs.Next() {
		var m MonthlySpeed
		if err := rs.Scan(&m.Month, &m.AvgSpeed); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rs.Err()
}

func (s *reader) CoupleRawRuns(ctx context.Context, id CoupleID, f ProfileFilter) ([]RawRun, error) {
	where, args := coupleScope(id, f)
	rs, err := s.query(ctx, `
		SELECT r.vitesse, r.penalites
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE `+where+`
		ORDER BY r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("couple raw runs: %w", err)
	}
	defer rs.Close()

	var out []RawRun
	for rs.Next() {
		var speed, penalty sql.NullString
		if err := rs.Scan(&speed, &penalty); err != nil {
			return nil, err
		}
		out = append(out, RawRun{Speed: rawText(speed), Penalty: rawText(penalty)})
	}
	return out, rs.Err()
}

func (s *reader) CoupleHistory(ctx context.Context, id CoupleID, f ProfileFilter) ([]RunResult, error) {
	where, args := coupleScope(id, f)
	rs, err := s.query(ctx, `
		SELECT lc.date_concours, lc.nom_concours, r.nom_epreuve, r.vitesse, r.penalites, r.qualificatif
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE `+where+`
		ORDER BY `+recentFirst+`, r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("couple history: %w", err)
	}
	defer rs.Close()

	var out []RunResult
	for rs.Next() {
		var date, venue, course, speed, penalty, qualifier sql.NullString
		if err := rs.Scan(&date, &venue, &course, &speed, &penalty, &qualifier); err != nil {
			return nil, err
		}
		out = append(out, RunResult{
			Date:      nullText(date),
			Venue:     nullText(venue),
			Course:    nullText(course),
			Speed:     nullText(speed),
			Penalty:   nullText(penalty),
			Qualifier: nullText(qualifier),
		})
	}
	return out, rs.Err()
}

func (s *reader) CoupleTotals(ctx context.Context, id CoupleID) (*CoupleTotals, error) {
	speed := s.num("r.vitesse")
	t := &CoupleTotals{ID: id}
	var avg sql.NullFloat64
	err := s.queryRow(ctx, `
		SELECT COUNT(r.id),
			AVG(CASE WHEN `+speed+` > 0 THEN `+speed+` ELSE NULL END),
			`+countWhen(fmt.Sprintf(cleanPenalty, "r")+" AND r.vitesse NOT IN ('-', '', '0', 'None')")+`
		FROM resultats r
		WHERE CAST(r.id_couple AS TEXT) = ?`, string(id),
	).Scan(&t.Runs, &avg, &t.CleanRuns)
	if err != nil {
		return nil, fmt.Errorf("couple totals: %w", err)
	}
	t.AvgSpeed = nullFloat(avg)
	return t, nil
}

func (s *reader) Breeds(ctx context.Context) ([]string, error) {
	rs, err := s.query(ctx, `
		SELECT DISTINCT race FROM resultats
		WHERE race IS NOT NULL AND race != ''
		ORDER BY race`)
	if err != nil {
		return nil, fmt.Errorf("breeds: %w", err)
	}
	defer rs.Close()
	return scanStrings(rs)
}

func (s *reader) TopByBreed(ctx context.Context, breed string, limit int) ([]TopRun, error) {
	speed := s.num("r.vitesse")
	rs, err := s.query(ctx, `
		SELECT r.nom_chien, r.conducteur, `+speed+`, r.region, r.club, r.penalites
		FROM resultats r
		WHERE UPPER(r.race) = UPPER(?)
		  AND `+fmt.Sprintf(cleanPenalty, "r")+`
		  AND `+speed+` > 0
		ORDER BY `+speed+` DESC, r.id
		LIMIT ?`, breed, limit)
	if err != nil {
		return nil, fmt.Errorf("top by breed: %w", err)
	}
	defer rs.Close()

	var out []TopRun
	for rs.Next() {
		var t TopRun
		var dog, handler, region, club, penalty sql.NullString
		if err := rs.Scan(&dog, &handler, &t.Speed, &region, &club, &penalty); err != nil {
			return nil, err
		}
		t.Dog, t.Handler = nullText(dog), nullText(handler)
		t.Region, t.Club, t.Penalty = nullText(region), nullText(club), nullText(penalty)
		out = append(out, t)
	}
	return out, rs.Err()
}

func (s *reader) EventYears(ctx context.Context) ([]string, error) {
	rs, err := s.query(ctx, `
		SELECT DISTINCT SUBSTR(date_concours, 7, 4) AS annee
		FROM liste_concours
		WHERE date_concours IS NOT NULL
		ORDER BY annee DESC`)
	if err != nil {
		return nil, fmt.Errorf("event years: %w", err)
	}
	defer rs.Close()
	return scanStrings(rs)
}

func (s *reader) RegionStats(ctx context.Context, f RegionFilter) ([]RegionAggregate, error) {
	speed := s.num("r.vitesse")
	region := "UPPER(TRIM(r.region))"

	placeholders := make([]string, len(foreignRegions))
	args := make([]any, 0, len(foreignRegions)+3)
	for i, name := range foreignRegions {
		placeholders[i] = "?"
		args = append(args, name)
	}

	q := `
		SELECT ` + region + `, COUNT(r.id),
			AVG(CASE WHEN ` + speed + ` > 0 THEN ` + speed + ` ELSE NULL END),
			` + countWhen(cleanRun("r")) + `
		FROM resultats r
		JOIN liste_concours lc ON r.id_concours = lc.id_concours
		WHERE r.region IS NOT NULL
		  AND TRIM(r.region) != ''
		  AND ` + region + ` NOT IN (` + strings.Join(placeholders, ", ") + `)`
	if f.Year != "" {
		q += " AND " + yearExpr + " = ?"
		args = append(args, f.Year)
	}
	if f.Grade != "" {
		q += " AND UPPER(r.nom_epreuve) LIKE ?"
		args = append(args, "%"+strings.ToUpper(f.Grade)+"%")
	}
	q += `
		GROUP BY ` + region + `
		HAVING COUNT(r.id) > ?
		ORDER BY ` + region
	args = append(args, f.MinRuns)

	rs, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("region stats: %w", err)
	}
	defer rs.Close()

	var out []RegionAggregate
	for rs.Next() {
		var a RegionAggregate
		var avg sql.NullFloat64
		if err := rs.Scan(&a.Region, &a.Runs, &avg, &a.CleanRuns); err != nil {
			return nil, err
		}
		a.AvgSpeed = nullFloat(avg)
		out = append(out, a)
	}
	return out, rs.Err()
}

func (s *reader) JudgeStats(ctx context.Context, f JudgeFilter) ([]JudgeAggregate, error) {
	speed := s.num("r.vitesse")
	elapsed := s.num("r.temps")
	judge := "UPPER(TRIM(r.juge))"

	q := `
		SELECT ` + judge + `, COUNT(r.id),
			AVG(CASE WHEN ` + speed + ` > 0 THEN ` + speed + ` ELSE NULL END),
			AVG(CASE WHEN ` + speed + ` > 0 AND ` + elapsed + ` > 0 THEN ` + speed + ` * ` + elapsed + ` ELSE NULL END),
			` + countWhen(cleanRun("r")) + `,
			` + countWhen(eliminatedRun("r")) + `
		FROM resultats r
		WHERE r.juge IS NOT NULL AND TRIM(r.juge) != ''`
	var args []any
	if f.Grade != "" {
		q += " AND UPPER(r.nom_epreuve) LIKE ?"
		args = append(args, "%"+strings.ToUpper(f.Grade)+"%")
	}
	q += `
		GROUP BY ` + judge + `
		HAVING COUNT(r.id) > ?
		ORDER BY ` + judge
	args = append(args, f.MinRuns)

	rs, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("judge stats: %w", err)
	}
	defer rs.Close()

	var out []JudgeAggregate
	for rs.Next() {
		var a JudgeAggregate
		var avgSpeed, avgDistance sql.NullFloat64
		if err := rs.Scan(&a.Judge, &a.Runs, &avgSpeed, &avgDistance, &a.CleanRuns, &a.Eliminated); err != nil {
			return nil, err
		}
		a.AvgSpeed, a.AvgDistance = nullFloat(avgSpeed), nullFloat(avgDistance)
		out = append(out, a)
	}
	return out, rs.Err()
}

func (s *reader) SharedRuns(ctx context.Context, a, b CoupleID) ([]SharedRun, error) {
	rs, err := s.query(ctx, `
		SELECT lc.date_concours, lc.nom_concours, r1.nom_epreuve,
		       r1.vitesse, r1.penalites,
		       r2.vitesse, r2.penalites
		FROM resultats r1
		JOIN resultats r2 ON r1.id_concours = r2.id_concours AND r1.nom_epreuve = r2.nom_epreuve
		JOIN liste_concours lc ON r1.id_concours = lc.id_concours
		WHERE CAST(r1.id_couple AS TEXT) = ? AND CAST(r2.id_couple AS TEXT) = ?
		ORDER BY `+recentFirst+`, r1.id`, string(a), string(b))
	if err != nil {
		return nil, fmt.Errorf("shared runs: %w", err)
	}
	defer rs.Close()

	var out []SharedRun
	for rs.Next() {
		var date, venue, course sql.NullString
		var speedA, penaltyA, speedB, penaltyB sql.NullString
		if err := rs.Scan(&date, &venue, &course, &speedA, &penaltyA, &speedB, &penaltyB); err != nil {
			return nil, err
		}
		out = append(out, SharedRun{
			EventDate: nullText(date),
			Venue:     nullText(venue),
			Course:    nullText(course),
			SpeedA:    rawText(speedA),
			PenaltyA:  rawText(penaltyA),
			SpeedB:    rawText(speedB),
			PenaltyB:  rawText(penaltyB),
		})
	}
	return out, rs.Err()
}

func scanStrings(rs rows) ([]string, error) {
	var out []string
	for rs.Next() {
		var v sql.NullString
		if err := rs.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			out = append(out, v.String)
		}
	}
	return out, rs.Err()
}
