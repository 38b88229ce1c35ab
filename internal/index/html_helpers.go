package index

import (
	"fmt"
	"strings"
)

// htmlHead returns the document head with the inline stylesheet.
func htmlHead(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
	%s
</head>
`, escapeHTML(title), pageCSS())
}

// pageCSS returns the shared inline styles. Theme variables switch with the
// reader's color-scheme preference.
func pageCSS() string {
	return `<style>
		:root {
			--bg-primary: #f5f5f5;
			--bg-secondary: white;
			--text-primary: #333;
			--text-secondary: #666;
			--link-color: #0066cc;
			--border-color: #e0e0e0;
			--shadow: rgba(0,0,0,0.1);
		}
		@media (prefers-color-scheme: dark) {
			:root {
				--bg-primary: #1a1a1a;
				--bg-secondary: #2d2d2d;
				--text-primary: #e0e0e0;
				--text-secondary: #b0b0b0;
				--link-color: #4d9fff;
				--border-color: #404040;
				--shadow: rgba(0,0,0,0.3);
			}
		}
		body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: var(--bg-primary); color: var(--text-primary); line-height: 1.6; }
		.container { max-width: 1000px; margin: 0 auto; }
		h1 { color: var(--text-primary); margin-bottom: 10px; }
		a { color: var(--link-color); }
		a:hover { opacity: 0.8; }
		.meta-text { color: var(--text-secondary); font-size: 14px; }
		.attribution { margin-top: 20px; }
		.filters { background: var(--bg-secondary); padding: 15px; border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); margin: 20px 0; display: flex; align-items: center; gap: 15px; }
		.filter-input { padding: 8px 12px; border: 1px solid var(--border-color); border-radius: 4px; background: var(--bg-primary); color: var(--text-primary); min-width: 240px; }
		.filter-count { margin-left: auto; font-size: 14px; color: var(--text-secondary); }
		.gist-table { width: 100%; border-collapse: collapse; background: var(--bg-secondary); border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); }
		.gist-table th { text-align: left; padding: 12px 10px; border-bottom: 2px solid var(--border-color); }
		.gist-table td { padding: 10px; border-bottom: 1px solid var(--border-color); }
		.gist-table th.sortable { cursor: pointer; user-select: none; }
		.gist-table th.sortable:hover { color: var(--link-color); }
		.count-cell { text-align: right; }
		.marker-cell { text-align: center; }
		.empty { text-align: center; padding: 40px; color: var(--text-secondary); }
	</style>`
}

// filterSortScript returns the embedded JavaScript implementing the title
// filter and the clickable column sorting.
func filterSortScript() string {
	return `	<script>
		const tbody = document.getElementById('gist-tbody');
		const sortState = { column: '', ascending: true };

		function sortBy(column) {
			if (sortState.column === column) {
				sortState.ascending = !sortState.ascending;
			} else {
				sortState.column = column;
				sortState.ascending = true;
			}
			const direction = sortState.ascending ? 1 : -1;

			const rows = Array.from(tbody.querySelectorAll('tr.gist-row'));
			rows.sort((a, b) => {
				const av = a.getAttribute('data-' + column) || '';
				const bv = b.getAttribute('data-' + column) || '';
				if (column === 'files') {
					return (Number(av) - Number(bv)) * direction;
				}
				return av.localeCompare(bv) * direction;
			});
			rows.forEach(row => tbody.appendChild(row));
		}

		(function() {
			const input = document.getElementById('titleFilter');
			const rows = tbody.querySelectorAll('tr.gist-row');
			const count = document.querySelector('.filter-count');

			function updateCount() {
				const visible = Array.from(rows).filter(row => row.style.display !== 'none').length;
				if (count) {
					count.textContent = visible + ' of ' + rows.length + ' gists';
				}
			}

			input.addEventListener('input', () => {
				const value = input.value.toLowerCase();
				rows.forEach(row => {
					const title = row.getAttribute('data-title') || '';
					row.style.display = title.includes(value) ? '' : 'none';
				});
				updateCount();
			});

			updateCount();
		})();
	</script>
`
}

// escapeHTML escapes special HTML characters to prevent XSS.
func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
