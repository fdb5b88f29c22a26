/*
	Project: Darasa - school management with spreadsheet reports.

	apps/api   - REST API (echo), wired with dig or by hand (-manual)
	apps/admin - CLI: migrations, report export and student import
	core       - domain services: school, people, assessment, attendance, bulletin, report
	storage    - postgres repositories (sqlx + squirrel)
	services   - email (sendgrid / console), logging (rollbar), report cache (memory / redis)
*/
package darasa

/*
TODO: report scheduling (periodic exports emailed to admins)
*/
