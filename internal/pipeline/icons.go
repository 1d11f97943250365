package pipeline

// Inline SVG icons (24x24, stroke based). They pass the document sanitizer's
// icon allowlist.
const (
	iconSVGOpen = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="16" height="16" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true">`

	iconLink = iconSVGOpen +
		`<path d="M10 13a5 5 0 0 0 7.54.54l3-3a5 5 0 0 0-7.07-7.07l-1.72 1.71"></path>` +
		`<path d="M14 11a5 5 0 0 0-7.54-.54l-3 3a5 5 0 0 0 7.07 7.07l1.71-1.71"></path></svg>`

	iconCopy = iconSVGOpen +
		`<rect x="9" y="9" width="13" height="13" rx="2" ry="2"></rect>` +
		`<path d="M5 15H4a2 2 0 0 1-2-2V4a2 2 0 0 1 2-2h9a2 2 0 0 1 2 2v1"></path></svg>`

	iconInfo = iconSVGOpen +
		`<circle cx="12" cy="12" r="10"></circle>` +
		`<line x1="12" y1="16" x2="12" y2="12"></line><line x1="12" y1="8" x2="12.01" y2="8"></line></svg>`

	iconWarning = iconSVGOpen +
		`<path d="M10.29 3.86L1.82 18a2 2 0 0 0 1.71 3h16.94a2 2 0 0 0 1.71-3L13.71 3.86a2 2 0 0 0-3.42 0z"></path>` +
		`<line x1="12" y1="9" x2="12" y2="13"></line><line x1="12" y1="17" x2="12.01" y2="17"></line></svg>`

	iconDanger = iconSVGOpen +
		`<polygon points="7.86 2 16.14 2 22 7.86 22 16.14 16.14 22 7.86 22 2 16.14 2 7.86 7.86 2"></polygon>` +
		`<line x1="15" y1="9" x2="9" y2="15"></line><line x1="9" y1="9" x2="15" y2="15"></line></svg>`

	iconSuccess = iconSVGOpen +
		`<path d="M22 11.08V12a10 10 0 1 1-5.93-9.14"></path>` +
		`<polyline points="22 4 12 14.01 9 11.01"></polyline></svg>`

	iconImageOff = iconSVGOpen +
		`<rect x="3" y="3" width="18" height="18" rx="2" ry="2"></rect>` +
		`<circle cx="8.5" cy="8.5" r="1.5"></circle><polyline points="21 15 16 10 5 21"></polyline>` +
		`<line x1="2" y1="2" x2="22" y2="22"></line></svg>`
)
