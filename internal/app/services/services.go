// Package services holds the business logic of the mobility workflow.
//
// Services defined in this package:
//   - AuthService: registration on the school domains, login and token issuance
//   - ReferenceService: majors, the current academic year and major heads
//   - ApplicationService: dossier creation, listing and the status transitions
//   - CourseService: course lines of a dossier and their review
//   - FileService: PDF documents, their blobs and signed download links
//   - MessageService: the discussion thread of a dossier
//   - NotificationService: the per-profile inbox
//   - EventDispatcher: inbox rows and the outbound webhook for workflow events
//   - StatsService: dashboard aggregates of the international office
package services
