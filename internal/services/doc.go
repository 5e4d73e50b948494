// Package services holds the application services behind the HTTP
// handlers: the snapshot store and the portfolio query service that
// answers metrics, trends, variance, allocation and detail requests
// over processed capital-project tables.
package services
